package builtin

import "github.com/amapianolab/groovehost/pkg/registry"

// Register installs every built-in plugin class. Called once at host
// startup, before the loader takes over catalog plugins.
func Register(reg *registry.Registry) {
	reg.Register("log-drum", NewLogDrum)
	reg.Register("clap-808", NewClap808)
	reg.Register("amapiano-bass", NewBass)
	reg.Register("shimmer-reverb", NewShimmerReverb)
}
