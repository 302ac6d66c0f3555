package endpoints

import (
	"github.com/jackzampolin/langsheet/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		&HealthEndpoint{},

		// Sessions
		&CreateSessionEndpoint{},
		&GetSessionEndpoint{},
		&DeleteSessionEndpoint{},
		&LoadEndpoint{},
		&UploadEndpoint{},
		&SegmentsEndpoint{},
		&SetGameEndpoint{},
		&PreviewEndpoint{},

		// Lines
		&ToggleLineEndpoint{},
		&DeleteLineEndpoint{},

		// Keys
		&ListKeysEndpoint{},
		&AddKeyEndpoint{},
		&RemoveKeyEndpoint{},
		&ReorderKeysEndpoint{},
		&RestoreKeysEndpoint{},

		// Mapping
		&GetMappingEndpoint{},
		&SetMappingEndpoint{},
		&DeleteMappingEndpoint{},

		// Profile
		&GetProfileEndpoint{},
		&PutProfileEndpoint{},

		&ExportEndpoint{},
	}
}
