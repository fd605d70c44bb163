// Package config provides configuration parsing for the dashboard server.
//
// The configuration is stored in salesdash.json (or salesdash.yaml) next to
// the binary or passed with --config. Every field has a default, so the file
// is optional, and SALESDASH_* environment variables override whatever the
// file says.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "host": "0.0.0.0",
//	    "port": 8080,
//	    "shutdownTimeout": "15s"
//	  },
//	  "api": {
//	    "baseURL": "https://crm.example.com/api",
//	    "timeout": "10s"
//	  },
//	  "session": {
//	    "store": "redis",
//	    "secureCookie": true,
//	    "redis": {"addr": "localhost:6379", "db": 0}
//	  },
//	  "live": {
//	    "searchDelay": "900ms",
//	    "eventRate": 20
//	  },
//	  "log": {"level": "info", "format": "json"},
//	  "tracing": {"enabled": true, "endpoint": "localhost:4318"}
//	}
//
// # Usage
//
//	cfg, err := config.Resolve(path, os.LookupEnv)
//	if err != nil {
//	    errors.Print(os.Stderr, err)
//	    os.Exit(1)
//	}
//
//	fmt.Println("Listening on", cfg.Server.Addr())
package config
