// Package config provides configuration parsing for the signup tool.
//
// The configuration is stored in signup.json. This package handles loading,
// defaulting and validating it.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "redirectTarget": "/"
//	  },
//	  "auth": {
//	    "baseURL": "https://auth.example.com",
//	    "signupPath": "/api/auth/signup",
//	    "timeout": "0s"
//	  },
//	  "session": {
//	    "provider": "redis",
//	    "cookieName": "session",
//	    "redisAddr": "localhost:6379"
//	  },
//	  "messages": {
//	    "file": "./messages.yaml"
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
