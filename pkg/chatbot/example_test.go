package chatbot_test

import (
	"fmt"
	"log"

	"github.com/pesanmasa/chatbot/pkg/chatbot"
)

func Example() {
	// The keyword backend needs no model files; production uses the default
	// BERT backend with chatbot.WithModelDir.
	bot, err := chatbot.New(
		chatbot.WithBackend(chatbot.BackendKeyword),
		chatbot.WithLabelsPath("../../data/labels.json"),
		chatbot.WithIntentsPath("../../data/intents.json"),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer bot.Close()

	conv := chatbot.NewLog()
	conv, _ = bot.Respond(conv, "apa itu PESANMASA?")
	conv, _ = bot.Respond(conv, "asdfgh")

	for _, turn := range conv.Newest() {
		fmt.Printf("%s: %s\n", turn.Role, turn.Text)
	}
	// Output:
	// bot: Maaf, saya belum bisa menjawab pertanyaan itu.
	// user: asdfgh
	// bot: PESANMASA adalah layanan pemesanan makanan masakan rumahan yang diantar langsung ke tempat Anda.
	// user: apa itu PESANMASA?
}
