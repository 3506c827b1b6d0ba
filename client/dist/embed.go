package clientdist

import _ "embed"

// WaypointJS is the thin client script.
//
// It is served at "/_waypoint/client.js".
//
//go:embed waypoint.js
var WaypointJS []byte
