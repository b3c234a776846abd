package chat_test

import (
	"github.com/killallgit/cortex-chat/pkg/chat"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Transcript", func() {
	var transcript *chat.Transcript

	BeforeEach(func() {
		transcript = chat.NewTranscript()
	})

	It("should start empty with an ID", func() {
		Expect(transcript.Len()).To(Equal(0))
		Expect(transcript.Turns()).To(BeEmpty())
		Expect(transcript.ID()).NotTo(BeEmpty())
	})

	It("should keep turns in append order", func() {
		transcript.Append(chat.NewUserTurn("question"))
		transcript.Append(chat.NewAssistantTurn("answer"))

		turns := transcript.Turns()
		Expect(turns).To(HaveLen(2))
		Expect(turns[0].Content).To(Equal("question"))
		Expect(turns[1].Content).To(Equal("answer"))
		Expect(turns[1].IsAssistant()).To(BeTrue())
	})

	It("should return a copy of the turns", func() {
		transcript.Append(chat.NewUserTurn("question"))

		turns := transcript.Turns()
		turns[0].Content = "changed"

		Expect(transcript.Turns()[0].Content).To(Equal("question"))
	})

	Describe("Reset", func() {
		It("should clear all turns and start a new conversation", func() {
			transcript.Append(chat.NewUserTurn("question"))
			transcript.Append(chat.NewAssistantTurn("answer"))
			id := transcript.ID()

			transcript.Reset()

			Expect(transcript.Len()).To(Equal(0))
			Expect(transcript.ID()).NotTo(Equal(id))
		})

		It("should be safe on an empty transcript", func() {
			Expect(func() { transcript.Reset() }).NotTo(Panic())
			Expect(transcript.Turns()).To(BeEmpty())
		})
	})
})
