// Package timesync tracks the device's time synchronisation state.
//
// The SNTP client itself is external; this package owns the synced
// flag, exposing atomic accessors and explicit transitions instead of
// a shared boolean. The link machine's edges drive it: a trigger on
// became-connected, a reset on became-disconnected so stale time is
// never trusted across link loss.
package timesync
