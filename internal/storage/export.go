package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/threebody/internal/dynamo"
)

type ExportData struct {
	Run    *RunMetadata             `json:"run,omitempty"`
	Steps  int                      `json:"steps"`
	States []dynamo.SimulationState `json:"states"`
}

// ExportJSON writes a run and its states as one indented JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, states []dynamo.SimulationState) error {
	data := ExportData{
		Run:    meta,
		Steps:  len(states),
		States: states,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
