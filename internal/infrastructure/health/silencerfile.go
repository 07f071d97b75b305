package health

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	core "github.com/vitaliisemenov/healthd/internal/core/health"
)

// maxSilencersFileLen bounds how large a silencers file this loader will
// read, mirroring original_source's HEALTH_SILENCERS_MAX_FILE_LEN guard in
// health_silencers_init — a malformed or maliciously large file is
// rejected before it is even parsed.
const maxSilencersFileLen = 20 * 1024 * 1024

// silencerFileDoc is the on-disk JSON shape of the silencers file (spec
// §6). Struct tags drive both JSON decoding and validator.v10 validation,
// the way internal/core/history.go's HistoryRequest is validated.
type silencerFileDoc struct {
	Type      string              `json:"type" validate:"required,oneof=DISABLE SILENCE NONE"`
	All       bool                `json:"all"`
	Silencers []silencerFileEntry `json:"silencers" validate:"dive"`
}

type silencerFileEntry struct {
	ID       string `json:"id"`
	Alarms   string `json:"alarms"`
	Charts   string `json:"charts"`
	Contexts string `json:"contexts"`
	Hosts    string `json:"hosts"`
	Families string `json:"families"`
}

// SilencerFileLoader reads and validates the silencers file from disk.
type SilencerFileLoader struct {
	validate *validator.Validate
}

// NewSilencerFileLoader returns a loader with its own validator instance.
func NewSilencerFileLoader() *SilencerFileLoader {
	return &SilencerFileLoader{validate: validator.New()}
}

// Load reads path, validates its schema, and returns the mode/silencer set
// ready to hand to core.SilencerStore.Replace.
func (l *SilencerFileLoader) Load(path string) (stype core.SilenceType, allAlarms bool, silencers []core.Silencer, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false, nil, fmt.Errorf("health: stat silencers file: %w", err)
	}
	if info.Size() == 0 {
		return 0, false, nil, core.ErrSilencerFileEmpty
	}
	if info.Size() > maxSilencersFileLen {
		return 0, false, nil, core.ErrSilencerFileTooBig
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, false, nil, fmt.Errorf("health: read silencers file: %w", err)
	}

	var doc silencerFileDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, false, nil, fmt.Errorf("health: parse silencers file: %w", err)
	}

	if err := l.validate.Struct(&doc); err != nil {
		return 0, false, nil, fmt.Errorf("%w: %s", core.ErrInvalidSilencer, err)
	}

	out := make([]core.Silencer, 0, len(doc.Silencers))
	for _, e := range doc.Silencers {
		out = append(out, core.Silencer{
			ID:       e.ID,
			Alarms:   e.Alarms,
			Charts:   e.Charts,
			Contexts: e.Contexts,
			Hosts:    e.Hosts,
			Families: e.Families,
		})
	}

	return parseType(doc.Type), doc.All, out, nil
}

func parseType(s string) core.SilenceType {
	switch s {
	case "DISABLE":
		return core.SilenceDisableAlarms
	case "SILENCE":
		return core.SilenceNotifications
	default:
		return core.SilenceNone
	}
}

// Save writes stype/allAlarms/silencers back to path in the same schema
// Load reads, so the silence CLI can edit the file and the Main Loop can
// pick the change up on the next SIGHUP-triggered reload.
func (l *SilencerFileLoader) Save(path string, stype core.SilenceType, allAlarms bool, silencers []core.Silencer) error {
	entries := make([]silencerFileEntry, 0, len(silencers))
	for _, s := range silencers {
		entries = append(entries, silencerFileEntry{
			ID:       s.ID,
			Alarms:   s.Alarms,
			Charts:   s.Charts,
			Contexts: s.Contexts,
			Hosts:    s.Hosts,
			Families: s.Families,
		})
	}

	doc := silencerFileDoc{
		Type:      typeName(stype),
		All:       allAlarms,
		Silencers: entries,
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("health: encode silencers file: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("health: write silencers file: %w", err)
	}
	return nil
}

func typeName(t core.SilenceType) string {
	switch t {
	case core.SilenceDisableAlarms:
		return "DISABLE"
	case core.SilenceNotifications:
		return "SILENCE"
	default:
		return "NONE"
	}
}
