package registry

import "github.com/amapianolab/groovehost/pkg/plugin"

// builtinMetadata is the known metadata table for built-in identifiers.
// Metadata for these is a pure function of the id.
var builtinMetadata = map[string]plugin.Metadata{
	"log-drum": {
		Name:        "Log Drum",
		Category:    "Drums",
		Description: "Pitched log drum with tunable body and decay",
		Type:        "instrument",
		Tags:        []string{"amapiano", "percussion", "melodic"},
	},
	"clap-808": {
		Name:        "808 Clap",
		Category:    "Percussion",
		Description: "Classic 808-style clap built from filtered noise bursts",
		Type:        "instrument",
		Tags:        []string{"808", "clap", "percussion"},
	},
	"amapiano-bass": {
		Name:        "Amapiano Bass",
		Category:    "Synths",
		Description: "Rolling sub bass with filter sweep and ADSR envelope",
		Type:        "instrument",
		Tags:        []string{"amapiano", "bass", "synth"},
	},
	"shimmer-reverb": {
		Name:        "Shimmer Reverb",
		Category:    "Effects",
		Description: "Diffuse reverb with octave-up shimmer in the feedback path",
		Type:        "effect",
		Tags:        []string{"reverb", "shimmer", "space"},
	},
}
