// Package lexroute embeds the lexroute retrieval and version-routing engine
// in another Go program, without going through the HTTP API.
//
//	client, err := lexroute.New(ctx,
//	    lexroute.WithRedis("localhost:6379", ""),
//	    lexroute.WithEditions("2013", "2025"),
//	    lexroute.WithRules("rules"),
//	    lexroute.WithEmbedding("https://api.openai.com/v1", key, "text-embedding-3-small", 1024),
//	    lexroute.WithCompletion("https://api.openai.com/v1", key, "gpt-4o-mini"),
//	)
//	defer client.Close()
//
//	ans, _ := client.Ask(ctx, "Quel est le taux de TVA en 2013 ?")
//	res, _ := client.Search(ctx, "non-résidents", "2025", 10)
package lexroute
