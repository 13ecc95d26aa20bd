// Package attribution implements the attribution analysis facade.
//
// The service layer validates requests, loads leads, opportunities, and
// touchpoints through repository interfaces defined in this package, runs the
// engine and analyzer, and persists result documents. It should never import
// from api/.
//
// Repository implementations live in repository/postgres/; the result archive
// lives in storage/.
package attribution
