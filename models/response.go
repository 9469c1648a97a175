package models

import "strconv"

// ResponseType tags a conversation reply so the presentation layer can pick
// its UI affordances.
type ResponseType string

const (
	ResponseGreeting            ResponseType = "greeting"
	ResponseSpecialtySelection  ResponseType = "specialty_selection"
	ResponseDoctorSelection     ResponseType = "doctor_selection"
	ResponsePatientInfo         ResponseType = "patient_info"
	ResponseTimeSelection       ResponseType = "time_selection"
	ResponseBookingConfirmation ResponseType = "booking_confirmation"
	ResponseError               ResponseType = "error"
	ResponseRetryInput          ResponseType = "retry_input"
	ResponseEmergencyRedirect   ResponseType = "emergency_redirect"
	ResponseFallback            ResponseType = "fallback"
	ResponseInfoProvided        ResponseType = "info_provided"
	ResponseFAQAnswer           ResponseType = "faq_answer"
)

// Response is one engine reply. Every variant below implements it and
// carries exactly the fields its type guarantees.
type Response interface {
	Type() ResponseType
	Text() string
	QuickReplies() []string
}

// Reply holds the display text and quick replies shared by all variants.
type Reply struct {
	Message     string
	Suggestions []string
}

func (r Reply) Text() string           { return r.Message }
func (r Reply) QuickReplies() []string { return r.Suggestions }

type GreetingResponse struct{ Reply }

func (GreetingResponse) Type() ResponseType { return ResponseGreeting }

type SpecialtySelectionResponse struct{ Reply }

func (SpecialtySelectionResponse) Type() ResponseType { return ResponseSpecialtySelection }

type DoctorSelectionResponse struct {
	Reply
	Specialty string
	Doctors   []Doctor
}

func (DoctorSelectionResponse) Type() ResponseType { return ResponseDoctorSelection }

type PatientInfoResponse struct {
	Reply
	Collecting Slot
}

func (PatientInfoResponse) Type() ResponseType { return ResponsePatientInfo }

type TimeSelectionResponse struct {
	Reply
	Doctor string
}

func (TimeSelectionResponse) Type() ResponseType { return ResponseTimeSelection }

type BookingConfirmationResponse struct {
	Reply
	AppointmentID int64
}

func (BookingConfirmationResponse) Type() ResponseType { return ResponseBookingConfirmation }

type ErrorResponse struct {
	Reply
	Cause string
}

func (ErrorResponse) Type() ResponseType { return ResponseError }

type RetryInputResponse struct {
	Reply
	Slot Slot
}

func (RetryInputResponse) Type() ResponseType { return ResponseRetryInput }

type EmergencyRedirectResponse struct{ Reply }

func (EmergencyRedirectResponse) Type() ResponseType { return ResponseEmergencyRedirect }

type FallbackResponse struct{ Reply }

func (FallbackResponse) Type() ResponseType { return ResponseFallback }

type InfoProvidedResponse struct {
	Reply
	Topic string
}

func (InfoProvidedResponse) Type() ResponseType { return ResponseInfoProvided }

type FAQAnswerResponse struct {
	Reply
	Category string
}

func (FAQAnswerResponse) Type() ResponseType { return ResponseFAQAnswer }

// ToChatResponse flattens a reply into the wire format.
func ToChatResponse(r Response) *ChatResponse {
	out := &ChatResponse{
		Response:    r.Text(),
		Type:        r.Type(),
		Suggestions: r.QuickReplies(),
	}

	switch v := r.(type) {
	case BookingConfirmationResponse:
		id := v.AppointmentID
		out.AppointmentID = &id
	case PatientInfoResponse:
		out.Collecting = v.Collecting.String()
	case RetryInputResponse:
		out.Collecting = v.Slot.String()
	case FAQAnswerResponse:
		out.Category = v.Category
	case InfoProvidedResponse:
		out.Category = v.Topic
	case ErrorResponse, GreetingResponse, SpecialtySelectionResponse, DoctorSelectionResponse,
		TimeSelectionResponse, EmergencyRedirectResponse, FallbackResponse:
	}

	for i, s := range out.Suggestions {
		out.Actions = append(out.Actions, Action{
			Type:  "quick_reply",
			Label: s,
			ID:    quickReplyID(i),
		})
	}
	return out
}

func quickReplyID(i int) string {
	return "reply_" + strconv.Itoa(i)
}
