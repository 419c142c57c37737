package ai

const symbolValidationPrompt = `Is "%s" the ticker symbol of a company listed on a Vietnamese stock exchange (HOSE, HNX or UPCOM)?

Common acronyms such as CEO, API, USA or HTML are never tickers.

Reply with ONLY YES or NO.`
