// Package session keeps game sessions in memory.
//
// Manager stores one service.Session per ID. IDs are matched case-insensitively,
// and generated IDs are four hex characters from crypto/rand. Each session owns its
// own engine, so sessions never share boards. Sessions live only as long as the
// process; RunJanitor removes those left idle past a maximum age.
//
// Usage:
//
//	manager := session.NewManager(logger)
//
//	sess, err := manager.Create("", scenario)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	go manager.RunJanitor(ctx, time.Minute, time.Hour)
package session
