package server

import (
	"fmt"
	"net/http"
)

// handleGlobalJS serves the global splitpilot script
func (s *Server) handleGlobalJS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Determine server URL from request
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	serverURL := fmt.Sprintf("%s://%s", scheme, r.Host)

	script := GenerateGlobalScript(serverURL)

	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.Write([]byte(script))
}

// GenerateGlobalScript generates the global sp.js script with the given
// server URL. The script keeps the visitor id in localStorage, asks the
// server for assignments and sends tracking beacons.
func GenerateGlobalScript(serverURL string) string {
	return fmt.Sprintf(`(function(){
  var S='%s';

  // Get or create visitor ID
  var vid=localStorage.getItem('sp_vid');
  if(!vid){
    vid='user_'+Date.now()+'_'+Math.random().toString(36).slice(2,10);
    localStorage.setItem('sp_vid',vid);
  }

  // Process all test elements
  document.querySelectorAll('[data-sp-test]').forEach(function(el){
    var test=el.dataset.spTest;
    var variants=JSON.parse(el.dataset.spVariants||'{}');

    fetch(S+'/api/assign?test='+encodeURIComponent(test)+'&vid='+encodeURIComponent(vid))
      .then(function(r){return r.json();})
      .then(function(a){
        if(variants[a.variant]!==undefined)el.textContent=variants[a.variant];
      })
      .catch(function(){});
  });

  // Process convert elements
  document.querySelectorAll('[data-sp-convert]').forEach(function(el){
    var test=el.dataset.spConvert;

    // URL type: beacon on load
    if(el.dataset.spConvertType==='url'){
      beacon(test,'conversion');
      return;
    }

    // Click handler
    el.addEventListener('click',function(){
      beacon(test,'conversion');
    });
  });

  function beacon(t,e,val){
    var p={t:t,e:e,vid:vid};
    if(val!==undefined)p.val=val;
    navigator.sendBeacon(S+'/b',JSON.stringify(p));
  }

  window.splitpilot={track:function(t,e,val){beacon(t,e,val);}};
})();`, serverURL)
}
