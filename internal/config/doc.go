// Package config loads the environment a run executes against.
//
// An environment is a single yaml file naming the run, the default driver
// scope, the driver construction timeout and the ordered list of devices:
//
//	name: nightly
//	defaultScope: CLASS
//	driverTimeout: 90s
//	devices:
//	  - name: chrome
//	    type: WEB
//	    browser: CHROME
//	    os: LINUX
//	    resolution: {width: 1920, height: 1080}
//	  - name: pixel
//	    type: MOBILE
//	    mobileOS: ANDROID
//	    scope: SUITE
//
// # File Location
//
// The path comes from the --env flag, else $STAGEHAND_ENV, else stagehand.yaml
// in the working directory. A missing or empty file yields
// api.ErrNoConfiguration, which the lifecycle treats as fatal.
//
// # Validation
//
// Loading collects every problem into an api.ConfigurationErrorCollection:
// device names must be present and unique, enum attributes must use known
// values, and browser and mobile attributes must sit on devices of the
// matching type. Unknown yaml fields are rejected.
//
// # Providers
//
// The lifecycle consumes a Provider. FileProvider loads a file once and
// caches the result; StaticProvider serves an environment built in code.
package config
