package server

import (
	"context"
	"net/http"

	"fact_check_news/page"
	"fact_check_news/report"
)

// processingSteps are shown while a fact-check is running.
var processingSteps = []string{
	"Extracting claims from article",
	"Deploying parallel fact-checking agents",
	"Searching for evidence using Brave Search",
	"Generating comprehensive report",
}

type indexView struct {
	page.State
	Steps []string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controllerFor(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	view := indexView{State: ctrl.Snapshot(), Steps: processingSteps}
	if err := indexTmpl.Execute(w, view); err != nil {
		s.logger.Printf("render index: %v", err)
	}
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controllerFor(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// The textarea is disabled while loading, so its value is ignored then.
	if ctrl.Phase() == page.Idle {
		ctrl.UpdateArticle(r.PostFormValue("article"))
		s.startSubmit(ctrl)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) startSubmit(ctrl *page.Controller) {
	ctx, cancel := s.baseCtx, context.CancelFunc(func() {})
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(s.baseCtx, s.timeout)
	}
	done, ok := ctrl.SubmitAsync(ctx)
	if !ok {
		cancel()
		return
	}
	s.inFlight.Add(1)
	go func() {
		defer s.inFlight.Done()
		defer cancel()
		<-done
	}()
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controllerFor(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if ctrl.Phase() == page.Idle {
		ctrl.Clear()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controllerFor(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	st := ctrl.Snapshot()
	if st.Report == "" {
		http.Error(w, "no report", http.StatusNotFound)
		return
	}
	doc, err := report.Document("Fact-Check Report", st.Report)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=report.html")
	_, _ = w.Write([]byte(doc))
}
