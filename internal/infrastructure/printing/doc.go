// Package printing renders report tables to HTML and converts the HTML to
// PDF with headless Chrome.
//
//	engine := NewTemplateEngine()
//	html, err := engine.RenderTable(ctx, table)
//	...
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{NoSandbox: true})
//	result, err := renderer.Render(ctx, &RenderRequest{HTML: html, Layout: table.Layout})
package printing
