package deepface

import (
	"errors"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/provider"
)

// Errors surfaced by the DeepFace client.
var (
	ErrUnavailable       = errors.New("deepface: service unavailable")
	ErrMalformedResponse = errors.New("deepface: malformed response")
	ErrEmptyEmbedding    = errors.New("deepface: result without embedding")
)

// representCall is the body of POST /represent. With EnforceDetection off
// DeepFace answers an empty or zero-confidence result instead of a 400.
type representCall struct {
	Img              string `json:"img"`
	Model            string `json:"model_name"`
	Detector         string `json:"detector_backend"`
	EnforceDetection bool   `json:"enforce_detection"`
	Align            bool   `json:"align"`
}

type representation struct {
	Results []faceRepresentation `json:"results"`
}

type faceRepresentation struct {
	Embedding      []float64 `json:"embedding"`
	Region         region    `json:"facial_area"`
	FaceConfidence *float64  `json:"face_confidence,omitempty"`
}

// undetected reports the full-frame placeholder DeepFace emits when nothing
// was found.
func (f faceRepresentation) undetected() bool {
	return f.FaceConfidence != nil && *f.FaceConfidence == 0
}

type region struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

func (r region) area() float64 {
	return float64(r.W * r.H)
}

func (r region) box() provider.BoundingBox {
	return provider.BoundingBox{
		X:      float64(r.X),
		Y:      float64(r.Y),
		Width:  float64(r.W),
		Height: float64(r.H),
	}
}
