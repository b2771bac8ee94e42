package api

import _ "embed"

// domBundle is the DOM serialization script served at /percy/dom.js.
//
//go:embed assets/dom.js
var domBundle []byte

// legacyAgentShim adapts the old agent API, percyagent.snapshot(node, opts),
// onto the bundle's serialize entry point. Appended to the bundle when the
// deprecated /percy-agent.js path is requested.
const legacyAgentShim = `
;window.PercyAgent = class PercyAgent {
  snapshot(node, options) {
    return window.PercyDOM.serialize(options);
  }
};
`
