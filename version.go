package lpm

// Version is the release of the lpm toolkit.
var Version = "0.4.0"
