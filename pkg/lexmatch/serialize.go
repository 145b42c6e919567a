package lexmatch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cognicore/lexmatch/pkg/lexmatch/config"
	"github.com/cognicore/lexmatch/pkg/lexmatch/index"
	"github.com/cognicore/lexmatch/pkg/lexmatch/internalerr"
)

// ModelFileName is the file a persisted parser is written to inside its
// model directory.
const ModelFileName = "parser.json"

// persistedModel is the serialized record for one parser instance.
// Required fields are decoded through pointers and raw messages so a
// record missing them is distinguishable from one carrying zero values.
type persistedModel struct {
	Config       *config.Config  `json:"config"`
	LanguageCode *string         `json:"language_code"`
	Map          json.RawMessage `json:"map"`
	IntentsNames *[]string       `json:"intents_names"`
	SlotsNames   *[]string       `json:"slots_names"`
}

// Marshal serializes the parser to its persisted record. The record
// round trips through Unmarshal with bit-identical matching behavior.
func (p *Parser) Marshal() ([]byte, error) {
	if !p.Fitted() {
		return nil, internalerr.ErrNotTrained
	}

	mapJSON, err := json.Marshal(p.index.Map)
	if err != nil {
		return nil, err
	}
	lang := p.language
	// Registries serialize as arrays, never null, so they stay
	// distinguishable from an absent field on load.
	intents := p.index.IntentNames
	if intents == nil {
		intents = []string{}
	}
	slots := p.index.SlotNames
	if slots == nil {
		slots = []string{}
	}
	return json.Marshal(persistedModel{
		Config:       &p.cfg,
		LanguageCode: &lang,
		Map:          mapJSON,
		IntentsNames: &intents,
		SlotsNames:   &slots,
	})
}

// Unmarshal reconstructs a trained parser from a persisted record.
// Detectors, stop-word overrides and the logger are runtime collaborators
// and are re-injected through opts; Config from opts is ignored in favor
// of the persisted one.
func Unmarshal(data []byte, opts Options) (*Parser, error) {
	var m persistedModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrLoading, err)
	}
	if m.Config == nil || m.LanguageCode == nil || m.Map == nil ||
		m.IntentsNames == nil || m.SlotsNames == nil {
		return nil, fmt.Errorf("%w: record missing required fields", internalerr.ErrLoading)
	}

	keyMap := make(map[string]index.Entry)
	if err := json.Unmarshal(m.Map, &keyMap); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrLoading, err)
	}

	opts.Config = *m.Config
	p := New(opts)
	p.language = *m.LanguageCode
	p.stops = p.stopSet(p.language)
	p.index = &index.Index{
		Map:         keyMap,
		IntentNames: *m.IntentsNames,
		SlotNames:   *m.SlotsNames,
	}
	return p, nil
}

// Persist writes the parser record into dir as ModelFileName, creating
// the directory if needed.
func (p *Parser) Persist(dir string) error {
	data, err := p.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ModelFileName), data, 0o644)
}

// Load reads a parser persisted with Persist. A missing model file is a
// loading error.
func Load(dir string, opts Options) (*Parser, error) {
	data, err := os.ReadFile(filepath.Join(dir, ModelFileName))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrLoading, err)
	}
	return Unmarshal(data, opts)
}
