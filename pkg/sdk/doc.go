// Package docquery provides an embedded Go client for the docquery
// retrieval pipeline: document ingestion, vector search and
// retrieval-augmented answering, all in-process.
//
// The client works out of the box with a deterministic local embedder
// and an extractive answer generator:
//
//	client, _ := docquery.New(ctx)
//	defer client.Close()
//
//	doc, _ := client.Documents().Register(ctx, "notes.txt", "text/plain")
//	_, _ = client.Documents().IngestText(ctx, doc.ID, "Go was designed at Google.")
//
//	answer, _ := client.Query(ctx, docquery.QueryRequest{Query: "Who designed Go?"})
//	fmt.Println(answer.Answer)
//
// Production setups plug in a real embedding provider and an optional
// Redis-backed embedding cache:
//
//	client, _ := docquery.New(ctx,
//	    docquery.WithEmbedder(myOpenAIEmbedder),
//	    docquery.WithGenerator(myChatGenerator),
//	    docquery.WithRedisCache("localhost:6379", ""),
//	)
package docquery
