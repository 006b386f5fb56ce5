// Package face builds the face detector selected by configuration.
package face

import (
	"fmt"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/config"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/provider"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/provider/mock"
)

// NewDetector creates the detector named by PROVIDER_TYPE.
//
// Environment variables:
//   - PROVIDER_TYPE: "deepface" or "mock" (default: "deepface")
//   - DEEPFACE_URL: DeepFace API URL (default: "http://localhost:5005")
func NewDetector(cfg *config.Config) (provider.Detector, error) {
	switch cfg.ProviderType {
	case config.ProviderDeepFace, "":
		return createDeepFaceDetector(cfg), nil
	case config.ProviderMock:
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s)",
			cfg.ProviderType, config.ProviderDeepFace, config.ProviderMock)
	}
}

func createDeepFaceDetector(cfg *config.Config) provider.Detector {
	deepfaceConfig := deepface.DefaultConfig()
	if cfg.DeepFaceURL != "" {
		deepfaceConfig.BaseURL = cfg.DeepFaceURL
	}

	return deepface.NewProvider(deepfaceConfig)
}
