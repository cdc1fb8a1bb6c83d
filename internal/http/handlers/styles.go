package handlers

import "net/http"

type stylesResponse struct {
	Styles   []stylePreset    `json:"styles"`
	Examples []examplePrompt `json:"examples"`
}

type stylePreset struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type examplePrompt struct {
	Index  int    `json:"index"`
	Prompt string `json:"prompt"`
}

func (a *App) Styles(w http.ResponseWriter, r *http.Request) {
	resp := stylesResponse{
		Styles:   make([]stylePreset, 0, len(a.Catalog.Styles)),
		Examples: make([]examplePrompt, 0, len(a.Catalog.Examples)),
	}
	for _, s := range a.Catalog.Styles {
		resp.Styles = append(resp.Styles, stylePreset{Name: s.Name, Description: s.Description})
	}
	for i, p := range a.Catalog.Examples {
		resp.Examples = append(resp.Examples, examplePrompt{Index: i, Prompt: p})
	}
	a.json(w, http.StatusOK, resp)
}
