package config

import (
	"github.com/invopop/jsonschema"

	"go.viam.com/motionsequence/motionplan"
)

// Schemas maps the names of the documents the tool reads to their JSON schema.
var Schemas = map[string]*jsonschema.Schema{
	"config":   jsonschema.Reflect(&Config{}),
	"sequence": jsonschema.Reflect(&motionplan.MotionSequenceRequest{}),
}
