package model

// UploadSuccessMessage is returned in every successful upload confirmation.
const UploadSuccessMessage = "File uploaded successfully"

// StoredFile is an uploaded file as exposed by the listing endpoint.
// It is identified solely by its filename; content lives in storage.
type StoredFile struct {
	Filename string `json:"filename"`
}

// UploadResult is the confirmation body returned by POST /upload.
type UploadResult struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}
