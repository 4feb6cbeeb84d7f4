// Package config loads pedalbridge settings from a YAML file.
//
// Every key is optional; missing keys keep their defaults. A few settings can
// be overridden through environment variables:
//
//	PEDALBRIDGE_LOG_LEVEL  log.level
//	PEDALBRIDGE_BUNDLE_ID  target.bundle_id
//	PEDALBRIDGE_HTTP_ADDR  http.addr
//
// Example:
//
//	midi:
//	  auto_connect_on_launch: true
//	  pedal_controller: 11
//	  preferred_devices: ["minilab", "arturia"]
//	target:
//	  bundle_id: com.apple.logic10
//	  settle_delay: 50ms
//	log:
//	  level: info
package config
