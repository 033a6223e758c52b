package dto

type RecognizerInfo struct {
	Name    string
	Version string
	Enabled bool
	Binary  string
	Formats []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type RecognizeInput struct {
	// Recognizer is optional; the first enabled recognizer supporting the image is used otherwise.
	Recognizer string
	ImagePath  string
}

type RecognizeOutput struct {
	Recognizer string
	Tokens     []string
}
