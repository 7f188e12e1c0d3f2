// Package travelbot plans trips through a resumable, stage-based
// conversation. A fixed graph of nodes extracts the trip request from
// free text, collects missing details one question at a time, runs the
// flight, hotel, and attraction searches, lets the user pick how to
// finish, and assembles the itinerary. After every node the full
// conversation state is checkpointed, so a conversation can stop at
// any point (most often to wait for the user) and resume later, on any
// process, exactly where it left off.
//
// The Orchestrator is the entry point. One orchestrator serves many
// conversations; each user turn is one Step call:
//
//	store, err := checkpoint.NewSQLiteStore("travelbot.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	o, err := travelbot.New(store, interpret.NewRules(),
//		flightClient, hotelClient, attractionClient)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := o.Step(ctx, "", "Plan a trip from NYC to Paris in June")
//	for err == nil && !res.Done {
//		fmt.Println(res.Prompt)
//		res, err = o.Step(ctx, res.ConversationID, readUserReply())
//	}
//	if err == nil {
//		fmt.Println(res.Itinerary.Render())
//	}
//
// Search providers degrade rather than fail: when a provider errors
// past its retry budget, its result slot is filled from a fallback
// catalog, the failure lands in the conversation's error log, and the
// final itinerary flags the section as degraded. A conversation only
// aborts on programming or infrastructure errors (a node failure, a
// routing inconsistency, a checkpoint that cannot be saved), and even
// then the last snapshot keeps it resumable.
package travelbot
