package processors

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/xraph/scribe/ai"
	"github.com/xraph/scribe/event"
	"github.com/xraph/scribe/platform"
	"github.com/xraph/scribe/predicate"
)

type executor struct {
	cfg    Config
	ai     ai.Completer
	api    platform.API
	logger *slog.Logger
}

// summarize writes a short summary of the created page to the configured
// property, or appends it to the page body.
func (x *executor) summarize(ctx context.Context, evt *event.Envelope) (bool, error) {
	pageID := evt.Entity.ID
	content, err := x.pageContent(ctx, pageID)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(content) == "" {
		x.logger.InfoContext(ctx, "page has no content to summarize", "page_id", pageID)
		return false, nil
	}

	resp, err := x.ai.Complete(ctx, ai.Prompt(x.cfg.systemPrompt(), content))
	if err != nil {
		return false, fmt.Errorf("summarize %s: %w", pageID, err)
	}
	summary := ai.Text(resp, false)
	if summary == "" {
		return false, fmt.Errorf("summarize %s: %w", pageID, ai.ErrEmptyCompletion)
	}

	if x.cfg.Property == "" {
		err = x.api.AppendParagraphs(ctx, pageID, []string{summary})
	} else {
		err = x.api.UpdatePageProperties(ctx, pageID, platform.Properties{
			x.cfg.Property: platform.RichTextValue(summary),
		})
	}
	if err != nil {
		return false, err
	}

	x.logger.DebugContext(ctx, "page summarized", "page_id", pageID)
	return true, nil
}

// classify asks for one of the configured options and stores it in the
// select property. An answer outside the options is a handled failure.
func (x *executor) classify(ctx context.Context, evt *event.Envelope) (bool, error) {
	pageID := evt.Entity.ID
	page, err := x.api.GetPage(ctx, pageID)
	if err != nil {
		return false, err
	}
	body, err := x.api.BlockText(ctx, pageID)
	if err != nil {
		return false, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Allowed options: %s\n\n", strings.Join(x.cfg.Options, ", "))
	fmt.Fprintf(&sb, "Title: %s\n", page.Title())
	for _, name := range slices.Sorted(maps.Keys(page.Properties)) {
		if name == x.cfg.Property {
			continue
		}
		if v, ok := page.PropertyText(name); ok && v != "" && page.Properties[name].Type != "title" {
			fmt.Fprintf(&sb, "%s: %s\n", name, v)
		}
	}
	if body != "" {
		sb.WriteString("\n")
		sb.WriteString(truncate(body, maxContentRunes))
	}

	resp, err := x.ai.Complete(ctx, ai.Prompt(x.cfg.systemPrompt(), sb.String()))
	if err != nil {
		return false, fmt.Errorf("classify %s: %w", pageID, err)
	}
	answer := strings.Trim(ai.Text(resp, true), " .\"'")

	choice, ok := matchOption(x.cfg.Options, answer)
	if !ok {
		x.logger.WarnContext(ctx, "classification outside allowed options",
			"page_id", pageID,
			"answer", answer,
		)
		return false, nil
	}

	if current, _ := page.PropertyText(x.cfg.Property); current == choice {
		return true, nil
	}
	if err := x.api.UpdatePageProperties(ctx, pageID, platform.Properties{
		x.cfg.Property: platform.SelectValue(choice),
	}); err != nil {
		return false, err
	}

	x.logger.DebugContext(ctx, "page classified", "page_id", pageID, "option", choice)
	return true, nil
}

// reply answers a new comment in its own discussion.
func (x *executor) reply(ctx context.Context, evt *event.Envelope) (bool, error) {
	pageID := commentPageID(evt)
	if pageID == "" {
		x.logger.WarnContext(ctx, "comment event without page", "event_id", evt.ID)
		return false, nil
	}

	comments, err := x.api.ListComments(ctx, pageID)
	if err != nil {
		return false, err
	}

	var target *platform.Comment
	var thread []string
	for i := range comments {
		c := &comments[i]
		if predicate.SameID(c.ID, evt.Entity.ID) {
			target = c
		}
	}
	if target == nil {
		x.logger.WarnContext(ctx, "comment not found", "comment_id", evt.Entity.ID, "page_id", pageID)
		return false, nil
	}
	for _, c := range comments {
		if c.DiscussionID == target.DiscussionID && c.ID != target.ID {
			thread = append(thread, c.Text())
		}
	}

	var sb strings.Builder
	if page, err := x.api.GetPage(ctx, pageID); err == nil {
		fmt.Fprintf(&sb, "Page: %s\n", page.Title())
	}
	if len(thread) > 0 {
		fmt.Fprintf(&sb, "Earlier in the discussion:\n%s\n", strings.Join(thread, "\n"))
	}
	fmt.Fprintf(&sb, "Comment: %s", target.Text())

	resp, err := x.ai.Complete(ctx, ai.Prompt(x.cfg.systemPrompt(), sb.String()))
	if err != nil {
		return false, fmt.Errorf("reply %s: %w", target.ID, err)
	}
	text := ai.Text(resp, false)
	if text == "" {
		return false, fmt.Errorf("reply %s: %w", target.ID, ai.ErrEmptyCompletion)
	}

	if _, err := x.api.CreateComment(ctx, platform.CommentRequest{
		DiscussionID: target.DiscussionID,
		Text:         text,
	}); err != nil {
		return false, err
	}
	return true, nil
}

func (x *executor) pageContent(ctx context.Context, pageID string) (string, error) {
	page, err := x.api.GetPage(ctx, pageID)
	if err != nil {
		return "", err
	}
	body, err := x.api.BlockText(ctx, pageID)
	if err != nil {
		return "", err
	}

	title := page.Title()
	if title == "" && body == "" {
		return "", nil
	}
	return truncate("Title: "+title+"\n\n"+body, maxContentRunes), nil
}

// commentPageID prefers the page id in the payload and falls back to a page
// parent.
func commentPageID(evt *event.Envelope) string {
	if c, ok := evt.Data.(event.Comment); ok && c.PageID != "" {
		return c.PageID
	}
	if parent, ok := evt.ParentRef(); ok && parent.Kind == event.KindPage {
		return parent.ID
	}
	return ""
}

func matchOption(options []string, answer string) (string, bool) {
	for _, o := range options {
		if strings.EqualFold(o, answer) {
			return o, true
		}
	}
	return "", false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
