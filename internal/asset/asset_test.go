package asset

import (
	"bytes"
	"strings"
	"testing"
)

var pngHeader = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00}

func TestDataURIRoundTrip(t *testing.T) {
	in := FromBytes(pngHeader, "image/png")
	uri := in.DataURI()
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("unexpected data URI prefix: %s", uri)
	}
	out, err := ParseDataURI(uri)
	if err != nil {
		t.Fatalf("ParseDataURI: %v", err)
	}
	if !bytes.Equal(out.Bytes, in.Bytes) {
		t.Fatalf("bytes changed across round trip")
	}
	if out.MIME != "image/png" {
		t.Fatalf("mime changed across round trip: %s", out.MIME)
	}
}

func TestParseDataURIRejectsPlainText(t *testing.T) {
	if _, err := ParseDataURI("hello world"); err == nil {
		t.Fatalf("expected error for non data URI input")
	}
	if _, err := ParseDataURI("data:image/png,rawpayload"); err == nil {
		t.Fatalf("expected error for non base64 data URI")
	}
	if _, err := ParseDataURI("data:image/png;base64,@@@@"); err == nil {
		t.Fatalf("expected error for invalid base64 payload")
	}
}

func TestFromBytesSniffsMIME(t *testing.T) {
	img := FromBytes(pngHeader, "")
	if img.MIME != "image/png" {
		t.Fatalf("expected sniffed image/png, got %s", img.MIME)
	}
}

func TestCloneCopiesBytes(t *testing.T) {
	in := FromBytes([]byte{1, 2, 3}, "image/png")
	cp := in.Clone()
	cp.Bytes[0] = 9
	if in.Bytes[0] != 1 {
		t.Fatalf("clone shares backing array with original")
	}
	if cp.MIME != in.MIME {
		t.Fatalf("clone lost mime type")
	}
}

func TestIdentityStableForEqualContent(t *testing.T) {
	a := FromBytes(pngHeader, "image/png")
	b := FromBytes(append([]byte(nil), pngHeader...), "image/png")
	if a.Identity() != b.Identity() {
		t.Fatalf("equal content produced different identities")
	}
	c := FromBytes(pngHeader, "image/webp")
	if a.Identity() == c.Identity() {
		t.Fatalf("different mime types should not share identity")
	}
}

func TestIsImageMIME(t *testing.T) {
	if !IsImageMIME("image/jpeg") || !IsImageMIME(" IMAGE/PNG ") {
		t.Fatalf("expected image mime types to be accepted")
	}
	if IsImageMIME("application/pdf") || IsImageMIME("") {
		t.Fatalf("expected non-image mime types to be rejected")
	}
}

func TestExtensionFor(t *testing.T) {
	if got := ExtensionFor("image/jpeg"); got != "jpg" {
		t.Fatalf("jpeg extension: %s", got)
	}
	if got := ExtensionFor("application/octet-stream"); got != "png" {
		t.Fatalf("fallback extension: %s", got)
	}
}
