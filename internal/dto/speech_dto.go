package dto

type SynthesizeRequest struct {
	Text string `json:"text" validate:"required"`
}
