// Package refinery is an in-process Go client for SERVO search-result refinement.
//
// The client runs the same pipeline the HTTP service exposes, without a network hop:
//   - result refinement: drop results flagged irrelevant, collapse exact and near-duplicate titles
//   - geo filtering: keep map markers within a radius of a center, or correlate them with results
//   - visitor search history and last visited path, kept in memory or in Redis
//
// # Refining backend hits
//
//	client, _ := refinery.New(ctx)
//	defer client.Close()
//
//	results, _ := client.RefineSearch(ctx, []map[string]any{
//	    {"source_table": "Property", "id": 1, "title": "Maison neuve", "similarity": 1},
//	    {"source_table": "Property", "id": 2, "title": "Maison neuve!", "similarity": 1},
//	})
//
// # Geo filtering
//
//	near, _ := client.WithinRadius(ctx, refinery.Center{Lat: -21.1351, Lon: 55.2471}, refinery.Km(20), points)
//
// # History in Redis
//
//	client, _ := refinery.New(ctx, refinery.WithRedis("localhost:6379", ""))
//	entries, _ := client.History().Record(ctx, "visitor-1", "villa saint-gilles")
package refinery
