package httpdto

// UploadForm carries the non-file multipart fields of a guest upload.
type UploadForm struct {
	GuestName    string `form:"guest_name"`
	GuestMessage string `form:"guest_message"`
}
