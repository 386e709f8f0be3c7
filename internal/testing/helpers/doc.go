// Package helpers provides test utility functions for the WE:VE API.
//
// # Requests
//
// Build and serve requests against a router:
//
//	rec := helpers.NewRequest(t, "POST", "/api/events").
//	    WithSession(token).
//	    WithMode(model.ModeDating).
//	    WithBody(body).
//	    Do(mux)
//
// # Assertions
//
//	helpers.AssertStatus(t, rec, http.StatusCreated)
//	helpers.AssertValidationError(t, rec, "date")
//	helpers.AssertRecordExists(t, db, "event:abc")
//
// # Pointer Helpers
//
//	name := helpers.StringPtr("Mina")
package helpers
