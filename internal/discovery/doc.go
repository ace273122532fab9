// Package discovery announces device entities to an automation hub.
//
// The Publisher builds Home Assistant style discovery configs and
// publishes them retained under the configured discovery prefix:
//
//	<prefix>/<component>/<device_id>/<object_id>/config
//
// Retained configs let a hub that restarts after the announcement still
// pick the device up. Retraction publishes an empty retained payload to
// the same topic, which clears the retained message at the broker.
//
// Publishing goes through the session manager's retained async path, so
// announcing from a connect callback never blocks on network I/O.
package discovery
