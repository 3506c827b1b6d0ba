// Package config loads the waypoint server configuration.
//
// Values come from three layers, later ones winning: built-in defaults,
// waypoint.json in the working directory, and environment variables
// (optionally from a .env file). CLI flags are applied on top by the
// caller.
//
// # Configuration File Structure
//
//	{
//	  "name": "waypoint",
//	  "server": {
//	    "addr": "localhost:3000",
//	    "shutdownTimeout": "10s"
//	  },
//	  "session": {
//	    "readTimeout": "2m",
//	    "writeTimeout": "10s",
//	    "handshakeTimeout": "10s",
//	    "maxMessageSize": 16384
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "telemetry": {
//	    "metrics": true,
//	    "metricsPath": "/metrics",
//	    "tracerName": "waypoint"
//	  }
//	}
//
// # Environment Variables
//
//   - WAYPOINT_ADDR: listen address (PORT alone sets ":PORT")
//   - WAYPOINT_LOG_LEVEL: debug, info, warn or error
//   - WAYPOINT_LOG_FORMAT: text or json
//   - WAYPOINT_METRICS: enable the metrics endpoint (true/false)
//   - WAYPOINT_METRICS_PATH: metrics endpoint path
//   - WAYPOINT_TRACER: tracer name
//   - WAYPOINT_READ_TIMEOUT, WAYPOINT_WRITE_TIMEOUT,
//     WAYPOINT_HANDSHAKE_TIMEOUT, WAYPOINT_SHUTDOWN_TIMEOUT: durations
//   - WAYPOINT_MAX_MESSAGE_SIZE: bytes
//
// # Usage
//
//	cfg, err := config.FromEnvironment(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Listening on", cfg.Server.Addr)
package config
