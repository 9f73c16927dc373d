package neos

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
)

// Minimal XML-RPC marshaling for the handful of NEOS methods this client
// calls. NEOS parameters are strings and ints; responses are strings,
// ints, base64 blobs, or arrays of those.

type methodCall struct {
	XMLName xml.Name   `xml:"methodCall"`
	Method  string     `xml:"methodName"`
	Params  []rpcParam `xml:"params>param"`
}

type rpcParam struct {
	Value rpcValue `xml:"value"`
}

type rpcValue struct {
	String *string `xml:"string"`
	Int    *int    `xml:"int"`
	Base64 *string `xml:"base64"`
	Array  *struct {
		Values []rpcValue `xml:"data>value"`
	} `xml:"array"`
}

type methodResponse struct {
	XMLName xml.Name   `xml:"methodResponse"`
	Params  []rpcParam `xml:"params>param"`
	Fault   *struct {
		Value struct {
			Raw string `xml:",innerxml"`
		} `xml:"value"`
	} `xml:"fault"`
}

func stringParam(s string) rpcParam { return rpcParam{Value: rpcValue{String: &s}} }
func intParam(i int) rpcParam       { return rpcParam{Value: rpcValue{Int: &i}} }

// call performs one XML-RPC round trip against the NEOS endpoint.
func (c *Client) call(ctx context.Context, method string, params ...rpcParam) (*methodResponse, error) {
	body, err := xml.Marshal(methodCall{Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("marshaling %s call: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calling %s: unexpected HTTP status %s", method, resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", method, err)
	}

	var mr methodResponse
	if err := xml.Unmarshal(raw, &mr); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", method, err)
	}
	if mr.Fault != nil {
		return nil, fmt.Errorf("%s: XML-RPC fault: %s", method, mr.Fault.Value.Raw)
	}
	return &mr, nil
}

// firstValue returns the single top-level value of a response.
func (r *methodResponse) firstValue() (rpcValue, error) {
	if len(r.Params) == 0 {
		return rpcValue{}, fmt.Errorf("empty XML-RPC response")
	}
	return r.Params[0].Value, nil
}

func (v rpcValue) asString() (string, error) {
	if v.String == nil {
		return "", fmt.Errorf("expected string value")
	}
	return *v.String, nil
}

func (v rpcValue) asBase64() ([]byte, error) {
	if v.Base64 == nil {
		// Some NEOS deployments return final results as a string.
		if v.String != nil {
			return []byte(*v.String), nil
		}
		return nil, fmt.Errorf("expected base64 value")
	}
	decoded, err := base64.StdEncoding.DecodeString(*v.Base64)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 value: %w", err)
	}
	return decoded, nil
}
