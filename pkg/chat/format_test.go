package chat_test

import (
	"github.com/killallgit/cortex-chat/pkg/chat"
	"github.com/killallgit/cortex-chat/pkg/stream"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Formatting", func() {
	Describe("NormalizeCitationMarkers", func() {
		It("should rewrite vendor citation brackets", func() {
			Expect(chat.NormalizeCitationMarkers("Sales grew【†1†】 and fell【†2†】.")).
				To(Equal("Sales grew[1] and fell[2]."))
		})

		It("should leave plain text alone", func() {
			Expect(chat.NormalizeCitationMarkers("no markers [here]")).To(Equal("no markers [here]"))
		})
	})

	Describe("DisplayText", func() {
		It("should turn bullets into paragraph breaks", func() {
			Expect(chat.DisplayText("Top:• EMEA• APAC")).To(Equal("Top:\n\n EMEA\n\n APAC"))
		})
	})

	Describe("CitationTitle", func() {
		It("should show source and document", func() {
			c := stream.Citation{SourceID: "doc1", DocID: "d1"}
			Expect(chat.CitationTitle(c)).To(Equal("[doc1] (d1)"))
		})
	})

	Describe("VisibleCitations", func() {
		It("should drop citations without a document ID and keep order", func() {
			citations := []stream.Citation{
				{SourceID: "1", DocID: "a"},
				{SourceID: "2"},
				{SourceID: "3", DocID: "c"},
			}

			visible := chat.VisibleCitations(citations)
			Expect(visible).To(HaveLen(2))
			Expect(visible[0].SourceID).To(Equal("1"))
			Expect(visible[1].SourceID).To(Equal("3"))
		})

		It("should return an empty slice for nil input", func() {
			visible := chat.VisibleCitations(nil)
			Expect(visible).NotTo(BeNil())
			Expect(visible).To(BeEmpty())
		})
	})
})
