package extract

import "errors"

func (e *MeasurementError) Error() string {
	msg := e.Message
	if e.Word != "" || e.Phone != "" {
		msg = e.Phone + " in " + e.Word + ": " + msg
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// MeasurementError reports why a single vowel token could not be measured
type MeasurementError struct {
	Code    string `json:"code"`
	Phone   string `json:"phone"`
	Word    string `json:"word"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *MeasurementError) Unwrap() error {
	return e.Cause
}

// Per-token error codes
const (
	ErrCodeTooShortForSmoothing = "TOO_SHORT_FOR_SMOOTHING"
	ErrCodeNoCandidates         = "NO_CANDIDATES"
	ErrCodeNoMeasurementPoint   = "NO_MEASUREMENT_POINT"
	ErrCodeUnmeasurable         = "UNMEASURABLE"
)

// NewMeasurementError creates a new measurement error
func NewMeasurementError(code, phone, word, message string, cause error) *MeasurementError {
	return &MeasurementError{
		Code:    code,
		Phone:   phone,
		Word:    word,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode returns the code of a MeasurementError in err's chain, or "".
func ErrorCode(err error) string {
	var me *MeasurementError
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}
