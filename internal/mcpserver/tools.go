// Copyright 2025 Alexander Alten (novatechflow), NovaTechflow (novatechflow.com).
// This project is supported and financed by Scalytics, Inc. (www.scalytics.io).
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/novatechflow/quotemcp/internal/quotes"
)

const (
	toolQuoteOfTheDay = "get_quote_of_the_day"
	toolRandomQuote   = "get_random_quote"
	toolQuotesCount   = "get_quotes_count"
)

type emptyInput struct{}

type QuoteInput struct {
	Category string `json:"category,omitempty" jsonschema:"Type of quote to retrieve, random or inspirational. Both draw from the same pool. Defaults to random."`
}

type QuoteOutput struct {
	Quote                string `json:"quote"`
	Author               string `json:"author"`
	Category             string `json:"category"`
	TotalQuotesAvailable int    `json:"total_quotes_available"`
}

type QuotesCountOutput struct {
	TotalQuotes int    `json:"total_quotes"`
	Description string `json:"description"`
}

func registerTools(server *mcp.Server, opts Options) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        toolQuoteOfTheDay,
		Description: "Get a quote of the day from a curated collection of inspirational quotes",
	}, instrumentTool(opts.Logger, toolQuoteOfTheDay, quoteOfTheDayHandler(opts.Catalog)))

	mcp.AddTool(server, &mcp.Tool{
		Name:        toolRandomQuote,
		Description: "Get a random quote from the collection",
	}, instrumentTool(opts.Logger, toolRandomQuote, randomQuoteHandler(opts.Catalog)))

	mcp.AddTool(server, &mcp.Tool{
		Name:        toolQuotesCount,
		Description: "Get the total number of quotes available in the collection",
	}, instrumentTool(opts.Logger, toolQuotesCount, quotesCountHandler(opts.Catalog)))
}

func quoteOfTheDayHandler(catalog *quotes.Catalog) mcp.ToolHandlerFor[QuoteInput, QuoteOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input QuoteInput) (*mcp.CallToolResult, QuoteOutput, error) {
		category := input.Category
		if category == "" {
			category = quotes.CategoryRandom
		}
		out, err := pickQuote(catalog, category)
		if err != nil {
			return nil, QuoteOutput{}, err
		}
		return nil, out, nil
	}
}

func randomQuoteHandler(catalog *quotes.Catalog) mcp.ToolHandlerFor[emptyInput, QuoteOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, QuoteOutput, error) {
		out, err := pickQuote(catalog, quotes.CategoryRandom)
		if err != nil {
			return nil, QuoteOutput{}, err
		}
		return nil, out, nil
	}
}

func quotesCountHandler(catalog *quotes.Catalog) mcp.ToolHandlerFor[emptyInput, QuotesCountOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, QuotesCountOutput, error) {
		return nil, QuotesCountOutput{
			TotalQuotes: catalog.Len(),
			Description: "Total number of quotes available in the collection",
		}, nil
	}
}

func pickQuote(catalog *quotes.Catalog, category string) (QuoteOutput, error) {
	if !quotes.ValidCategory(category) {
		return QuoteOutput{}, fmt.Errorf("unsupported category %q: expected %q or %q",
			category, quotes.CategoryRandom, quotes.CategoryInspirational)
	}
	quote, err := catalog.Random()
	if err != nil {
		return QuoteOutput{}, err
	}
	return QuoteOutput{
		Quote:                quote.Text,
		Author:               quote.Author,
		Category:             category,
		TotalQuotesAvailable: catalog.Len(),
	}, nil
}

func instrumentTool[In, Out any](logger *slog.Logger, name string, h mcp.ToolHandlerFor[In, Out]) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input In) (*mcp.CallToolResult, Out, error) {
		res, out, err := h(ctx, req, input)
		status := "ok"
		if err != nil {
			status = "error"
			logger.Debug("tool call failed", "tool", name, "error", err)
		}
		toolCallsTotal.WithLabelValues(name, status).Inc()
		return res, out, err
	}
}
