// Package config handles configuration loading for the connectx backend.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${CONNECTX_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//
// Database:
//
//	database:
//	  path: "/var/lib/connectx/connectx.db"
//
// External agent:
//
//	agent:
//	  base_url: "https://agent.example.com/v1/reasoningEngines/123"
//	  bootstrap_token: "${AGENT_BOOTSTRAP_TOKEN}"   # optional seed credential
//	  credentials_json: "${GCP_AGENT_CREDENTIALS}"  # inline service-account JSON
//	  credentials_file: "/etc/connectx/sa.json"     # or a key file path
//	  session_secret: "${SESSION_SECRET}"           # cipher key material
//	  request_timeout: "60s"
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${CONNECTX_JWT_SECRET}"
//	  token_ttl: "24h"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load("/etc/connectx/connectx.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
