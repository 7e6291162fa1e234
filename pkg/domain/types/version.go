package types

// Version is the codefreeze version, overwritten at build time
var Version = "dev"
