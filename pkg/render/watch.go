package render

// WatchClientScript keeps the document head and the form container in sync
// with the model pushed over the watch feed. The feed URL is read from the
// data-watch attribute of the script element.
const WatchClientScript = `
(function() {
    'use strict';

    var script = document.currentScript;
    var url = script && script.getAttribute('data-watch');
    if (!url) return;

    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;
    var builtinViewport = document.head.querySelector('[data-ngutils-default]');

    function isViewport(tag) {
        return tag.tagName === 'meta' && (tag.attrs || []).some(function(a) {
            return a.name === 'name' && a.value === 'viewport';
        });
    }

    function applyTags(tags) {
        var old = document.head.querySelectorAll('[data-ngutils]');
        old.forEach(function(el) { el.remove(); });
        (tags || []).forEach(function(tag) {
            var el = document.createElement(tag.tagName);
            (tag.attrs || []).forEach(function(a) { el.setAttribute(a.name, a.value); });
            el.setAttribute('data-ngutils', '');
            document.head.appendChild(el);
        });

        // The built-in viewport only stands in while none is contributed.
        if (builtinViewport) {
            if ((tags || []).some(isViewport)) {
                builtinViewport.remove();
            } else if (!builtinViewport.parentNode) {
                document.head.appendChild(builtinViewport);
            }
        }
    }

    function applyClasses(entries) {
        document.querySelectorAll('[data-form]').forEach(function(el) {
            var name = el.getAttribute('data-form');
            var cls = 'svy-form';
            (entries || []).forEach(function(e) {
                if (e.formname === name && e.styleclass) cls += ' ' + e.styleclass;
            });
            el.className = cls;
        });
    }

    function connect() {
        var proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var target = url.indexOf('ws') === 0 ? url : proto + '//' + location.host + url;
        var ws = new WebSocket(target);

        ws.onopen = function() { reconnectDelay = 1000; };

        ws.onmessage = function(e) {
            var msg;
            try { msg = JSON.parse(e.data); } catch (err) { return; }
            if (!msg.model) return;
            applyTags(msg.model.contributedTags);
            applyClasses(msg.model.styleclasses);
        };

        ws.onclose = function() {
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() { ws.close(); };
    }

    connect();
})();
`
