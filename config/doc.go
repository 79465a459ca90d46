// Package config loads the staging configuration.
//
// Configuration is built in layers: compiled defaults, then each file
// added to the Loader in order, then DRISTAGE_* environment variables.
// Files may be JSON or YAML, chosen by extension, and only the keys a
// layer sets override the layers beneath it.
//
//	loader := config.NewLoader()
//	loader.AddLayer("dristage.yaml")
//	loader.AddLayer("dristage.local.json")
//	loader.EnableValidation(true)
//
//	cfg, err := loader.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	client, err := sparql.NewClient(cfg.Store.SPARQL(), staging.Queries())
//
// A minimal YAML file:
//
//	store:
//	  query_endpoint: http://localhost:7200/repositories/staging
//	  update_endpoint: http://localhost:7200/repositories/staging/statements
//	  timeout: 30s
//	identity:
//	  base_iri: http://id.example.com/
//	input:
//	  directory: /data/export
//
// Durations are written as text ("90s", "30m", "14d"). Environment
// overrides use the section and key in upper case, for example
// DRISTAGE_STORE_QUERY_ENDPOINT, DRISTAGE_CACHE_TTL and
// DRISTAGE_INPUT_KINDS (comma separated).
//
// SafeConfig guards a Config shared between goroutines; Get returns a
// deep copy. String and Redacted mask store and NATS credentials.
package config
