// Package mongo provides a MongoDB-backed referenced-key source for media
// reconciliation, built on the official mongo-driver.
//
// A KeySource runs a distinct query over one string field of a collection:
//
//	source, err := mongo.NewKeySource(db.Collection("movies"), "poster")
//	if err != nil {
//		log.Fatal(err)
//	}
//	cleaner := media.NewCleaner(source, store)
package mongo
