// Package config loads and validates bears job configuration.
//
// # Usage
//
//	cfg, err := config.LoadJobConfig("census.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//	result, err := groupby.Aggregate(table, cfg.ToGroupBy())
//
// # File Format
//
//	name: census
//	input:
//	  path: ${DATA_DIR}/censustract-00-10.csv.gz
//	  column_types:
//	    GEOID: text
//	group_by:
//	  keys: [CBSA09]
//	  drop_missing_key: true
//	  aggregates:
//	    - {column: CBSA_T, kind: last}
//	    - {column: POP00, kind: sum}
//	    - {column: POP10, kind: sum}
//	output:
//	  format: csv
//	  header: false
//
// # Environment Variable Substitution
//
// ${VAR_NAME} anywhere in the file is replaced with the value of the
// environment variable before parsing; unset variables become empty.
package config
