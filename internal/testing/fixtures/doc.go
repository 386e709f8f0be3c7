// Package fixtures provides test data factories for the WE:VE API.
//
// # Factory Pattern
//
//	f := fixtures.New(tdb.DB)
//
// # Creating Test Data
//
//	user := f.CreateUser(t)                      // single account
//	alice, bob := f.CreateCouple(t)              // linked partners
//	f.CreateEvent(t, alice, model.ModeWedding)   // scoped row
//	f.CreateInvite(t, alice, -time.Hour)         // already stale
//
// # Customization
//
//	user := f.CreateUser(t, fixtures.WithMode(model.ModeFamily))
//
// # Cleanup
//
// Rows live in the TestDB namespace and go away with tdb.Close.
package fixtures
