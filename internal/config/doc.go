// Package config provides configuration parsing for urlgen projects.
//
// The configuration is stored in urlgen.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "manifest": "routes.json",
//	  "artifacts": [
//	    {
//	      "output": "static/urls.js",
//	      "writer": "class",
//	      "className": "URLResolver",
//	      "exclude": ["admin:*"]
//	    },
//	    {
//	      "output": "static/urls.es5.js",
//	      "writer": "simple",
//	      "es5": true
//	    }
//	  ],
//	  "placeholders": {
//	    "variables": {"year": [2021]},
//	    "unnamed": {"rev": [[12, 4]]}
//	  },
//	  "build": {
//	    "minify": true
//	  },
//	  "dev": {
//	    "port": 7600,
//	    "host": "localhost"
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
//	fmt.Println("Manifest:", cfg.ManifestPath())
package config
