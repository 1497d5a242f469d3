/*
Package builder constructs the execution graph from the format-agnostic
configuration model.

The construction is a multi-phase process:

 1. Node creation: every node, and every node inside a group, becomes an
    operation built through the registry. Each group also gets a proxy
    operation whose sockets are the group's exposed inputs and outputs.

 2. Linking: `inputs` references are resolved to sockets and connected.
    Editor defaults and resize modes are applied to the named inputs, and
    outputs are marked in declaration order.

 3. Group expansion: what feeds each proxy input is relinked onto the inner
    sockets it is exposed to, the consumers of each proxy output are moved
    onto the inner socket it returns, and the proxy is removed. An exposed
    input fed by nothing is replaced by a constant holding its default.

 4. Autoconnect: every input still unlinked gets a constant operation holding
    its editor default, so that the graph validates.

The resulting graph is ready for execution.System.
*/
package builder
