package tsemitter

import "strings"

// Header is the first line of every generated file.
const Header = "// Code generated by api-gen. DO NOT EDIT.\n"

// runtime is emitted verbatim after the header. Generated client functions
// delegate to fetcher (GET) and mutator (everything else).
const runtime = `
type ApiParamValue = string | number | boolean | null | undefined;
type ApiParamRecord = { [key: string]: ApiParamValue | ApiParamValue[] };
type ApiParams = { query: ApiParamRecord; path: ApiParamRecord };

let apiBaseUrl: string =
	typeof window !== "undefined" ? window.location.origin : "http://localhost";

export function setBaseUrl(url: string) {
	apiBaseUrl = url;
}

function createUrl(url: string, params: ApiParams) {
	const path = params?.path ?? {};
	const _url = Object.keys(path).reduce(
		(acc, key) => acc.replace(` + "`{${key}}`" + `, encodeURIComponent(String(path[key] ?? ""))),
		url,
	);

	const completeUrl = new URL(_url, apiBaseUrl);
	const query = params?.query ?? {};
	Object.keys(query).forEach((key) => {
		const val = query[key];
		const values = Array.isArray(val) ? val : [val];
		values.forEach((v) => {
			if (v === null || v === undefined) {
				return;
			}
			completeUrl.searchParams.append(key, String(v));
		});
	});

	return completeUrl;
}

async function fetcher<TResult, TErr>(
	url: string,
	params: ApiParams,
	init?: RequestInit,
) {
	const _init: RequestInit = { ...(init ?? {}), method: "GET" };

	const res = await fetch(createUrl(url, params), _init);
	const bodyData = await res.json();

	if (!res.ok) {
		return bodyData as TErr;
	}

	return bodyData as TResult;
}

async function mutator<TBody, TResult, TErr>(
	method: "POST" | "PUT" | "DELETE" | "PATCH",
	url: string,
	params: ApiParams,
	body: TBody | null,
	init?: RequestInit,
) {
	const _init: RequestInit = {
		...(init ?? {}),
		method,
		headers: { "Content-Type": "application/json", ...(init?.headers ?? {}) },
		body: body === null || body === undefined ? undefined : JSON.stringify(body),
	};

	const res = await fetch(createUrl(url, params), _init);
	const bodyData = await res.json();

	if (!res.ok) {
		return bodyData as TErr;
	}

	return bodyData as TResult;
}

`

// runtimeIdentifiers are the top-level names declared by runtime. Generated
// declarations must not reuse them.
var runtimeIdentifiers = []string{
	"ApiParamValue", "ApiParamRecord", "ApiParams",
	"apiBaseUrl", "setBaseUrl", "createUrl", "fetcher", "mutator",
}

// Line terminators would end the header comment.
var commentEscaper = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ", "\u2028", " ", "\u2029", " ")

// Preamble returns the fixed text that precedes all generated declarations.
// A non-empty source is recorded in the header comment.
func Preamble(source string) string {
	if source == "" {
		return Header + runtime
	}
	return Header + "// Source: " + commentEscaper.Replace(source) + "\n" + runtime
}
