package app

import "errors"

var (
	// ErrNoDocument is returned when a session has no processed document.
	ErrNoDocument = errors.New("no document processed")

	// ErrNoFile is returned when processing is requested without a path.
	ErrNoFile = errors.New("no file provided")
)

// User-facing messages.
const (
	MsgNoFile          = "Please upload a PDF file first."
	MsgNoDocument      = "Please upload and process a document first."
	MsgProcessed       = "Document processed successfully! Ready for Q&A."
	MsgProcessingError = "Error processing document: "

	MsgNoText        = "No text provided for summarization."
	MsgSummaryFailed = "Failed to generate summary due to an error."
	MsgNoQuestion    = "No question provided."
	MsgNotEnoughInfo = "I don't have enough information to answer this question based on the document."
	MsgAnswerFailed  = "Failed to generate an answer due to an error."
)
