// Package config provides configuration parsing for the ngutils server.
//
// Configuration is read from ngutils.json and then overridden from
// NGUTILS_* environment variables. Every field has a default, so running
// without a file is valid.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "addr": ":8080",
//	    "readTimeout": "10s",
//	    "writeTimeout": "10s",
//	    "shutdownTimeout": "15s",
//	    "allowedOrigins": ["https://app.example.com"]
//	  },
//	  "log": {"level": "info", "format": "json"},
//	  "snapshot": {
//	    "backend": "s3",
//	    "s3": {"bucket": "ngutils", "prefix": "models/", "region": "eu-west-1"}
//	  },
//	  "metrics": {"enabled": true, "namespace": "ngutils"},
//	  "tracing": {"enabled": true, "tracerName": "ngutils"},
//	  "page": {"title": "App", "lang": "en"}
//	}
//
// # Environment
//
//	NGUTILS_ADDR, NGUTILS_ALLOWED_ORIGINS, NGUTILS_LOG_LEVEL,
//	NGUTILS_LOG_FORMAT, NGUTILS_SNAPSHOT_BACKEND, NGUTILS_S3_BUCKET,
//	NGUTILS_S3_PREFIX, NGUTILS_S3_REGION, NGUTILS_S3_ENDPOINT,
//	NGUTILS_S3_PATH_STYLE, NGUTILS_METRICS, NGUTILS_TRACING
package config
