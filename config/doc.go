/*
Package config loads dynascript settings.

Settings come from three layers, later ones winning: built-in defaults, a
YAML file, and environment variables (optionally seeded from a .env file).

	region: eu-west-1
	read_only: true
	query:
	  timeout: 10s
	  max_retries: 3
	  workers: 4
	scripts:
	  dirs: [scripts]
	  load: [testscript.js]
	  exec_limit: 5s
	log:
	  file: dynascript.log
	  debug: true

Environment variables: AWS_ACCESS_KEY, AWS_SECRET_KEY, AWS_REGION,
DYNASCRIPT_PROFILE, DYNASCRIPT_ENDPOINT, DYNASCRIPT_READ_ONLY,
DYNASCRIPT_DEBUG, DYNASCRIPT_LOG_FILE, DYNASCRIPT_SCRIPT_DIRS and
DYNASCRIPT_QUERY_TIMEOUT.
*/
package config
