package rewind

// Version is the release of the library and CLI. Overridden at build time with
// -ldflags "-X github.com/aretw0/rewind.Version=...".
var Version = "0.3.0-dev"
