// Package config loads asset-bundler settings with viper: built-in defaults,
// an optional asset-bundler.yaml and ASSET_BUNDLER_* environment variables,
// in increasing order of precedence.
//
// Example asset-bundler.yaml:
//
//	content:
//	  root: Assets/
//	  exclude: ["Assets/Editor/**"]
//	naming:
//	  extension: .unity3d
//	  name_by_hash: false
//	record:
//	  auto_record: true
//	  auto_group_by_directories: ["Assets/UI/**"]
//	analysis:
//	  workers: 4
//	  cache_size: 256
package config
