// Package config provides configuration parsing for navroute projects.
//
// The configuration is stored in navroute.json at the project root and is
// read by the navroute CLI.
//
// # Configuration File Structure
//
//	{
//	  "name": "shop",
//	  "manifest": "routes.yaml",
//	  "serve": {
//	    "port": 3000,
//	    "host": "localhost",
//	    "root": "public",
//	    "index": "index.html",
//	    "reload": true
//	  },
//	  "s3": {
//	    "region": "eu-west-1"
//	  },
//	  "events": {
//	    "enabled": true,
//	    "path": "/_navroute/events"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "path": "/metrics"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
