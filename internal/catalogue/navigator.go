package catalogue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Mas3oood/Bovali/internal/providers/drive"
)

// Lister is the slice of the Drive client the navigator needs.
type Lister interface {
	ListFolders(ctx context.Context, parentID string) ([]drive.Folder, error)
	ListImageFiles(ctx context.Context, parentID string) ([]drive.File, error)
}

// ErrSuperseded reports that a newer navigation landed while this fetch was
// in flight; its result was discarded and the newer listing stands.
var ErrSuperseded = errors.New("catalogue: navigation superseded by a newer request")

// Crumb is one segment of the breadcrumb trail.
type Crumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Listing is the visible content of the current folder.
type Listing struct {
	Folders []drive.Folder `json:"folders"`
	Files   []drive.File   `json:"files"`
}

// Navigator walks the catalogue tree one folder at a time, keeping a
// breadcrumb trail back to the root. Every navigation bumps a generation
// counter and fetches outside the lock; a fetch that comes home to find the
// generation moved on is dropped, so racing clicks can never resurrect a
// folder the user already left.
type Navigator struct {
	mu      sync.Mutex
	lister  Lister
	trail   []Crumb
	listing Listing
	loaded  bool
	gen     uint64
}

// NewNavigator roots the trail at the given folder. Nothing is fetched until
// the first Refresh or Enter.
func NewNavigator(lister Lister, rootID, rootName string) *Navigator {
	if rootName == "" {
		rootName = "Catalogue"
	}
	return &Navigator{
		lister: lister,
		trail:  []Crumb{{ID: rootID, Name: rootName}},
	}
}

// Breadcrumbs returns a copy of the current trail, root first.
func (n *Navigator) Breadcrumbs() []Crumb {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Crumb(nil), n.trail...)
}

// Current returns the trail and the last committed listing. The bool is false
// until a listing has been loaded at least once.
func (n *Navigator) Current() ([]Crumb, Listing, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Crumb(nil), n.trail...), n.listing, n.loaded
}

// Refresh re-fetches the folder at the top of the trail.
func (n *Navigator) Refresh(ctx context.Context) (*Listing, error) {
	n.mu.Lock()
	target := n.trail[len(n.trail)-1]
	n.gen++
	gen := n.gen
	n.mu.Unlock()

	return n.fetch(ctx, gen, target.ID)
}

// Enter pushes the folder onto the trail and fetches its contents. The trail
// advances immediately; a failed fetch leaves the previous listing on screen
// with the new crumb in place, so the user can retry from the breadcrumb.
func (n *Navigator) Enter(ctx context.Context, folderID, name string) (*Listing, error) {
	n.mu.Lock()
	n.trail = append(n.trail, Crumb{ID: folderID, Name: name})
	n.gen++
	gen := n.gen
	n.mu.Unlock()

	return n.fetch(ctx, gen, folderID)
}

// Jump truncates the trail to the crumb at depth (0 = root) and re-fetches
// that folder's contents.
func (n *Navigator) Jump(ctx context.Context, depth int) (*Listing, error) {
	n.mu.Lock()
	if depth < 0 || depth >= len(n.trail) {
		n.mu.Unlock()
		return nil, fmt.Errorf("catalogue: breadcrumb depth %d out of range", depth)
	}
	n.trail = n.trail[:depth+1]
	target := n.trail[depth]
	n.gen++
	gen := n.gen
	n.mu.Unlock()

	return n.fetch(ctx, gen, target.ID)
}

func (n *Navigator) fetch(ctx context.Context, gen uint64, folderID string) (*Listing, error) {
	folders, err := n.lister.ListFolders(ctx, folderID)
	if err != nil {
		return nil, err
	}
	files, err := n.lister.ListImageFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}

	listing := Listing{Folders: folders, Files: files}

	n.mu.Lock()
	defer n.mu.Unlock()
	if gen != n.gen {
		return nil, ErrSuperseded
	}
	n.listing = listing
	n.loaded = true
	return &listing, nil
}
