package i18n

// Message keys for every localized string the API returns inline.
const (
	KeyUploadRenderShot = "upload_render_shot"
	KeyUploadPattern    = "upload_pattern"
	KeyUploadMaterial   = "upload_material"
	KeyUploadOutline    = "upload_outline"
	KeyUploadSource     = "upload_source"
	KeyDescribePattern  = "describe_pattern"

	KeyChatApology      = "chat_apology"
	KeyEditConfirmation = "edit_confirmation"
	KeyChatBusy         = "chat_busy"

	KeyGeminiUnconfigured = "gemini_unconfigured"
	KeyDriveUnconfigured  = "drive_unconfigured"
	KeyBatchEmpty         = "batch_empty"
	KeyExportsEmpty       = "exports_empty"
)

var messages = map[string]map[Locale]string{
	KeyUploadRenderShot: {
		LocaleEnglish: "Please upload a render shot",
		LocaleArabic:  "يرجى تحميل صورة الغرفة",
	},
	KeyUploadPattern: {
		LocaleEnglish: "Please upload a pattern image",
		LocaleArabic:  "يرجى تحميل صورة النمط",
	},
	KeyUploadMaterial: {
		LocaleEnglish: "Please upload at least one material image",
		LocaleArabic:  "يرجى تحميل صورة خامة واحدة على الأقل",
	},
	KeyUploadOutline: {
		LocaleEnglish: "Please upload a pattern outline",
		LocaleArabic:  "يرجى تحميل مخطط النمط",
	},
	KeyUploadSource: {
		LocaleEnglish: "Please upload an image to process",
		LocaleArabic:  "يرجى تحميل صورة للمعالجة",
	},
	KeyDescribePattern: {
		LocaleEnglish: "Please describe the pattern you want to create",
		LocaleArabic:  "يرجى وصف النمط الذي تريد إنشاءه",
	},
	KeyChatApology: {
		LocaleEnglish: "Sorry, I ran into a problem answering that. Please try again.",
		LocaleArabic:  "عذراً، واجهت مشكلة في الرد. يرجى المحاولة مرة أخرى.",
	},
	KeyEditConfirmation: {
		LocaleEnglish: "Done. The image has been updated.",
		LocaleArabic:  "تم. لقد تم تحديث الصورة.",
	},
	KeyChatBusy: {
		LocaleEnglish: "A reply is still being generated. Please wait for it to finish.",
		LocaleArabic:  "لا يزال الرد قيد الإنشاء. يرجى الانتظار حتى يكتمل.",
	},
	KeyGeminiUnconfigured: {
		LocaleEnglish: "The image generation service is not configured. Add a Gemini API key to enable it.",
		LocaleArabic:  "خدمة توليد الصور غير مهيأة. أضف مفتاح Gemini API لتفعيلها.",
	},
	KeyDriveUnconfigured: {
		LocaleEnglish: "The catalogue service is not configured. Add a Drive API key to enable it.",
		LocaleArabic:  "خدمة الكتالوج غير مهيأة. أضف مفتاح Drive API لتفعيلها.",
	},
	KeyBatchEmpty: {
		LocaleEnglish: "The model did not return any images. Please try again.",
		LocaleArabic:  "لم يُرجع النموذج أي صور. يرجى المحاولة مرة أخرى.",
	},
	KeyExportsEmpty: {
		LocaleEnglish: "There are no exported images yet.",
		LocaleArabic:  "لا توجد صور مصدَّرة بعد.",
	},
}

// T returns the message for key in the given locale, falling back to English
// and then to the key itself so a missing entry stays visible.
func T(locale Locale, key string) string {
	byLocale, ok := messages[key]
	if !ok {
		return key
	}
	if msg, ok := byLocale[locale]; ok {
		return msg
	}
	return byLocale[LocaleEnglish]
}
