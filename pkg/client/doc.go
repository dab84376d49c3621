// Package client is a Go client for the searchgw HTTP API.
//
//	c, _ := client.New("http://localhost:5000",
//	    client.WithAPIKey(os.Getenv("GATEWAY_API_KEY")),
//	    client.WithOrigin("http://localhost:3000"),
//	)
//	hits, _ := c.Search(ctx, "matrix")
//	tags, _ := c.PopularTags(ctx)
//	doc, err := c.Details(ctx, 42)
//	if errors.Is(err, client.ErrNotFound) { ... }
package client
