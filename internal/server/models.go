package server

import (
	"time"

	"docqa/internal/app"
)

type questionRequest struct {
	Question string `json:"question" binding:"required"`
}

type sessionResponse struct {
	ID       string    `json:"id"`
	Created  time.Time `json:"created"`
	State    app.State `json:"state"`
	Document string    `json:"document,omitempty"`
	Title    string    `json:"title,omitempty"`
}

func toSessionResponse(s *app.Session) sessionResponse {
	resp := sessionResponse{ID: s.ID, Created: s.Created, State: s.State()}
	if doc := s.Document(); doc != nil {
		resp.Document = doc.Filename
		resp.Title = doc.Title
	}
	return resp
}

type processResponse struct {
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	Collection string    `json:"collection,omitempty"`
	Pages      int       `json:"pages"`
	Chunks     int       `json:"chunks"`
	OCRUsed    bool      `json:"ocr_used"`
	Indexed    bool      `json:"indexed"`
	State      app.State `json:"state"`
}

type sourceResponse struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Distance float32 `json:"distance"`
}

type answerResponse struct {
	Answer  string           `json:"answer"`
	Route   app.Route        `json:"route"`
	Sources []sourceResponse `json:"sources,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
	Error   string `json:"error,omitempty"`
}
