// Package chatbot answers single-turn FAQ questions. Each utterance is
// classified into an intent, one of that intent's canned responses is picked
// at random, and both sides of the exchange are appended to a conversation
// log owned by the caller.
//
// Quick start:
//
//	bot, err := chatbot.New(chatbot.WithModelDir("models/"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer bot.Close()
//
//	conv := chatbot.NewLog()
//	conv, reply := bot.Respond(conv, "jam buka kapan?")
//	fmt.Println(reply)
//
// A Bot keeps no per-conversation state and is safe for concurrent use;
// give every conversation its own Log. Logs are values: Respond returns a
// new Log and never modifies the one passed in.
package chatbot
