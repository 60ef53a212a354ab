package wizard

// Step is a stage of the four-step wizard
type Step int

const (
	StepUpload Step = iota + 1
	StepStyle
	StepGenerate
	StepDownload
)

func (s Step) String() string {
	switch s {
	case StepUpload:
		return "Upload photo"
	case StepStyle:
		return "Choose style"
	case StepGenerate:
		return "Generate avatar"
	case StepDownload:
		return "Download"
	default:
		return "Unknown"
	}
}

// Session holds the wizard state for one run. It lives in process memory only.
type Session struct {
	UploadedPhotoURL   string
	SelectedStyle      string
	GeneratedAvatarURL string
}

// Current reports the step the user is on
func (s *Session) Current() Step {
	switch {
	case s.UploadedPhotoURL == "":
		return StepUpload
	case s.SelectedStyle == "":
		return StepStyle
	case s.GeneratedAvatarURL == "":
		return StepGenerate
	default:
		return StepDownload
	}
}

// Reset starts over
func (s *Session) Reset() {
	*s = Session{}
}
